package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	name := ObjectName(42, "Cat.PNG")

	assert.True(t, strings.HasPrefix(name, "questions/42/"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)
	assert.NotEqual(t, name, ObjectName(42, "Cat.PNG"))
}

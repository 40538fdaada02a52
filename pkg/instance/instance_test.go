package instance

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIDPrecedence(t *testing.T) {
	t.Setenv("SETTISFY_INSTANCE_ID", " cron-a ")
	t.Setenv("DYNO", "worker.2")
	assert.Equal(t, "cron-a", GetID())

	t.Setenv("SETTISFY_INSTANCE_ID", "")
	assert.Equal(t, "worker.2", GetID())
}

func TestGetIDIncludesPid(t *testing.T) {
	t.Setenv("SETTISFY_INSTANCE_ID", "")
	t.Setenv("DYNO", "  ")
	id := GetID()
	assert.True(t, strings.HasSuffix(id, "-"+strconv.Itoa(os.Getpid())), id)
}

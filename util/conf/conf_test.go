package conf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	c, err := Read(strings.NewReader("# labels\nnsubj\n\n  dobj \nauxpass\n#aux\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"nsubj", "dobj", "auxpass"}, c.Values)
}

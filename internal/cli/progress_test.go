package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewImportProgress(&buf, 2)

	p.FileDone(3)
	p.FileDone(0)
	p.Finish()

	assert.Equal(t, 3, p.Saved())
	assert.Equal(t, "2 arquivo(s) processado(s), 3 transação(ões) salva(s).", p.Summary())
}

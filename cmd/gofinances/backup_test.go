package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackup_CreateListRestoreDelete(t *testing.T) {
	h := newHarness(t)
	h.signIn()
	h.mustRun("add", "--title", "Pizza", "--amount", "59", "--type", "outcome", "--category", "food")

	out := h.mustRun("backup", "create", "antes", "-m", "só a pizza")
	assert.Contains(t, out, "Backup criado: antes")

	h.mustRun("add", "--title", "Cinema", "--amount", "30", "--type", "outcome", "--category", "leisure")
	assert.Contains(t, h.mustRun("list"), "Cinema")

	out = h.mustRun("backup", "list")
	assert.Contains(t, out, "antes")
	assert.Contains(t, out, "só a pizza")
	assert.Contains(t, out, "manual")

	out = h.mustRun("backup", "restore", "antes")
	assert.Contains(t, out, "Backup restaurado")

	out = h.mustRun("list")
	assert.Contains(t, out, "Pizza")
	assert.NotContains(t, out, "Cinema")

	h.mustRun("backup", "delete", "antes")
	assert.Contains(t, h.mustRun("backup", "list"), "Nenhum backup encontrado")
}

func TestBackup_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "backup", "restore", "ghost")
	requireUserError(t, err)

	h.mustRun("backup", "create", "dup")
	_, err = h.run("", "backup", "create", "dup")
	requireUserError(t, err)

	_, err = h.run("", "backup", "delete", "../x")
	requireUserError(t, err)
}

func TestImportOFX_TakesAutoCheckpoint(t *testing.T) {
	h := newHarness(t)
	h.signIn()

	h.mustRun("import-ofx", filepath.Join("testdata", "extrato_abril.ofx"))

	out := h.mustRun("backup", "list")
	assert.Contains(t, out, "auto-import-")
	assert.Contains(t, out, "auto")
}

package skill

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(NewStore(afero.NewMemMapFs(), "skills"))
}

func TestRegisterAndInvoke(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Store().Write("add", Template("add")))

	unit, err := reg.Register("add")
	require.NoError(t, err)
	assert.Equal(t, "add", unit.Name)
	assert.Equal(t, "skill.Add", unit.Symbol)

	result, err := unit.InvokeInts(10, 2)
	require.NoError(t, err)
	assert.Equal(t, 12, result)
}

func TestGetUnregistered(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Get("add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegisterMissingSource(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Register("add")
	require.Error(t, err)
	assert.False(t, reg.Has("add"))
}

func TestRegisterUndefinedSymbol(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Store().Write("add", "package skill\n\nfunc Subtract(a, b int) int { return a - b }\n"))

	_, err := reg.Register("add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must define skill.Add")
}

func TestBrokenUnitPanicsAsError(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Store().Write("add", BrokenTemplate("add")))

	unit, err := reg.Register("add")
	require.NoError(t, err)

	_, err = unit.InvokeInts(2, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Contains(t, err.Error(), "corrupted skill source")
}

func TestReloadPicksUpRewrittenSource(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Store().Write("add", BrokenTemplate("add")))
	_, err := reg.Register("add")
	require.NoError(t, err)

	require.NoError(t, reg.Store().Write("add", Template("add")))
	unit, err := reg.Reload("add")
	require.NoError(t, err)

	result, err := unit.InvokeInts(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, result)
}

func TestReloadUnchangedSourceIsIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Store().Write("add", Template("add")))
	_, err := reg.Register("add")
	require.NoError(t, err)

	before, err := reg.Get("add")
	require.NoError(t, err)
	got, err := before.InvokeInts(4, 6)
	require.NoError(t, err)

	after, err := reg.Reload("add")
	require.NoError(t, err)
	again, err := after.InvokeInts(4, 6)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestReloadUnregistered(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Store().Write("add", Template("add")))

	_, err := reg.Reload("add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestInvokeArgumentMismatch(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Store().Write("add", Template("add")))
	unit, err := reg.Register("add")
	require.NoError(t, err)

	_, err = unit.Invoke(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 2 arguments")

	_, err = unit.Invoke(1, "two")
	require.Error(t, err)
}

func TestStorePathAndExists(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "skills")
	assert.False(t, store.Exists("add"))
	require.NoError(t, store.Write("add", Template("add")))
	assert.True(t, store.Exists("add"))
	assert.Equal(t, "skills/add.go", store.Path("add"))

	source, err := store.Read("add")
	require.NoError(t, err)
	assert.Contains(t, source, "func Add(a, b int) int")
}

func TestSymbolFor(t *testing.T) {
	assert.Equal(t, "skill.Add", symbolFor("add"))
	assert.Equal(t, "skill.Multiply", symbolFor("multiply"))
	assert.Equal(t, "skill.Run", symbolFor(""))
}

func TestNames(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Store().Write("add", Template("add")))
	require.NoError(t, reg.Store().Write("noop", Template("noop")))
	_, err := reg.Register("add")
	require.NoError(t, err)
	_, err = reg.Register("noop")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"add", "noop"}, reg.Names())
}

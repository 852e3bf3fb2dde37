package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

func TestNewBackend(t *testing.T) {
	hashed := 0
	store := NewBackend(WithHasher(types.HasherFunc(func(p string) (string, error) {
		hashed++
		return "hashed:" + p, nil
	})))
	require.NoError(t, store.Open(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer store.Close()

	users, err := store.GetTable(types.UsersTable)
	require.NoError(t, err)
	id, err := users.Create(&types.User{
		Username: "public_api",
		Email:    "public@example.com",
		Password: "pw",
		IsActive: true,
		Role:     types.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, hashed)

	got, err := users.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "hashed:pw", got.(*types.User).PasswordHash)
	assert.WithinDuration(t, time.Now(), got.(*types.User).CreatedAt, time.Minute)
}

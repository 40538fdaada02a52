package users

import (
	"context"
	"testing"

	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupUsersTestDB(t))

	user, err := repo.Create(ctx, CreateUserDTO{
		Email:       "  Nur@Example.com ",
		FirstName:   "Nur",
		LastName:    "Aisyah",
		AccountType: "Customer",
	})
	require.NoError(t, err)
	assert.Equal(t, "nur@example.com", user.Email)
	assert.True(t, user.IsActive)

	byEmail, err := repo.FindByEmail(ctx, "NUR@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepositoryCreateRejectsUnknownAccountType(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	_, err := repo.Create(context.Background(), CreateUserDTO{Email: "a@example.com", AccountType: "vendor"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRepositoryFindByIDsSkipsUnknownAndDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupUsersTestDB(t))

	a, err := repo.Create(ctx, CreateUserDTO{Email: "a@example.com", FirstName: "A", AccountType: AccountTypeCustomer})
	require.NoError(t, err)
	b, err := repo.Create(ctx, CreateUserDTO{Email: "b@example.com", FirstName: "B", AccountType: AccountTypeSettler})
	require.NoError(t, err)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, a.ID, uuid.New(), uuid.Nil})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "A", found[a.ID].FirstName)
	assert.Equal(t, AccountTypeSettler, found[b.ID].AccountType)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepositoryCreateDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupUsersTestDB(t))

	_, err := repo.Create(ctx, CreateUserDTO{Email: "dup@example.com", AccountType: AccountTypeCustomer})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Email: "DUP@example.com", AccountType: AccountTypeSettler})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

package auth

import (
	"context"
	"testing"

	"github.com/DevStdio379/settisfy-web/internal/accounts"
	"github.com/DevStdio379/settisfy-web/internal/users"
	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/db"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRegisterTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.OperatorAccount{}))
	return conn
}

func newRegisterService(t *testing.T, conn *gorm.DB) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{DB: db.FromGorm(conn), PasswordConfig: config.PasswordConfig{}})
	require.NoError(t, err)
	return svc
}

func TestRegisterCustomerCreatesUser(t *testing.T) {
	ctx := context.Background()
	conn := setupRegisterTestDB(t)
	svc := newRegisterService(t, conn)

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:     "Nur@Settisfy.test",
		Password:  "customer-pass",
		Role:      enums.AccountRoleCustomer,
		FirstName: "Nur",
		LastName:  "Aisyah",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, users.AccountTypeCustomer, resp.User.AccountType)
	require.NotNil(t, resp.Account.UserID)
	assert.Equal(t, resp.User.ID, *resp.Account.UserID)

	stored, err := accounts.NewRepository(conn).FindByEmail(ctx, "nur@settisfy.test")
	require.NoError(t, err)
	ok, err := security.VerifyPassword("customer-pass", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Register(ctx, RegisterRequest{Email: "nur@settisfy.test", Password: "another-pass", Role: enums.AccountRoleAdmin})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRegisterLinksExistingUser(t *testing.T) {
	ctx := context.Background()
	conn := setupRegisterTestDB(t)
	svc := newRegisterService(t, conn)

	settler, err := users.NewRepository(conn).Create(ctx, users.CreateUserDTO{
		Email:       "aina@settisfy.test",
		FirstName:   "Aina",
		AccountType: users.AccountTypeSettler,
	})
	require.NoError(t, err)

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:    "aina.ops@settisfy.test",
		Password: "settler-pass",
		Role:     enums.AccountRoleSettler,
		UserID:   &settler.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, settler.ID, resp.User.ID)

	_, err = svc.Register(ctx, RegisterRequest{
		Email:    "aina.customer@settisfy.test",
		Password: "customer-pass",
		Role:     enums.AccountRoleCustomer,
		UserID:   &settler.ID,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRegisterAdminHasNoUser(t *testing.T) {
	ctx := context.Background()
	conn := setupRegisterTestDB(t)
	svc := newRegisterService(t, conn)

	resp, err := svc.Register(ctx, RegisterRequest{Email: "root@settisfy.test", Password: "admin-pass", Role: enums.AccountRoleAdmin})
	require.NoError(t, err)
	assert.Nil(t, resp.User)
	assert.Nil(t, resp.Account.UserID)

	userID := uuid.New()
	_, err = svc.Register(ctx, RegisterRequest{Email: "root2@settisfy.test", Password: "admin-pass", Role: enums.AccountRoleAdmin, UserID: &userID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

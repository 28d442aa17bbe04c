package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/hediammar/QatarPanels-sub002/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100;not null;uniqueIndex" json:"email" binding:"required"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      string    `gorm:"size:50;not null;default:'viewer'" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type LoginInfo struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB()

	if !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email")
	}
	role := input.Role
	if role == "" {
		role = RoleViewer
	}
	if !ValidRole(role) {
		return nil, errors.New("invalid role")
	}
	// Only an admin may create another admin account.
	if role == RoleAdmin {
		callerRole, _ := utils.GetRoleFromContext(ctx)
		if callerRole != RoleAdmin {
			return nil, utils.ErrorPermissionDenied
		}
	}
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Name:     input.Name,
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: string(hashed),
		Role:     role,
		IsActive: utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	email = strings.ToLower(strings.TrimSpace(email))

	user := User{}

	// check the redis user cache before hitting the db
	exists, err := config.GetRedisObject("User:"+email, &user)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Take(&user).Error
		if err != nil {
			return nil, errors.New("invalid email or password")
		}
	}

	// check login credentials
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, errors.New("invalid email or password")
	}

	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	if err := config.SetRedisObject("User:"+email, &user, 15*time.Minute); err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token: token,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, id)
}

func ListUsers(ctx context.Context) ([]*User, error) {
	db := config.GetDB()
	var users []*User
	if err := db.WithContext(ctx).Order("name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

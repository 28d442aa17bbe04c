package utils

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

var CountryCode = "QA"

func IsValidEmail(email string) bool {
	// Basic email validation regex pattern
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	regex := regexp.MustCompile(pattern)
	return regex.MatchString(email)
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err // Phone number is invalid
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil // Phone number is valid for the specified country code
}

func ProcessValidationErrors(err error) map[string]string {

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	// Remove any whitespace and check for empty strings
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}

	// Convert string to decimal
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	return dec, nil
}

// ImportLock serializes bulk import runs so concurrent imports cannot race
// find-before-create resolution into duplicate entities. The returned release
// func must be called when the run finishes; refresh re-extends the TTL and
// should be called between rows so a long batch never outlives its lock.
func ImportLock(ctx context.Context, lockType string, moduleName string, functionName string, ttl time.Duration) (release func(), refresh func(ctx context.Context) error, err error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Avoid nil-pointer panics when Redis lock isn't initialized yet.
		config.LogError(logger, moduleName, functionName, "Redis lock not initialized", lockType, errors.New("redis lock is nil"))
		return nil, nil, errors.New("service not ready (redis lock not initialized)")
	}
	lockKey := fmt.Sprintf("import:%s", lockType)
	lock, err := locker.Obtain(ctx, lockKey, ttl, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain import lock", lockKey, err)
		return nil, nil, errors.New("another import is already running")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining import lock", lockKey, err)
		return nil, nil, err
	}
	release = func() {
		_ = lock.Release(context.Background())
	}
	refresh = func(ctx context.Context) error {
		return lock.Refresh(ctx, ttl, nil)
	}
	return release, refresh, nil
}

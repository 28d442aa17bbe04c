package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hediammar/QatarPanels-sub002/utils"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"record not found", utils.ErrorRecordNotFound, http.StatusNotFound},
		{"permission denied", utils.ErrorPermissionDenied, http.StatusForbidden},
		{"unclassified parse error", errors.New("sheet is empty"), http.StatusBadRequest},
		{"unclassified store error", errors.New("driver: bad connection"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tc.err)
		if w.Code != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.name, w.Code, tc.status)
		}
		if !strings.Contains(w.Body.String(), "error") {
			t.Errorf("%s: body %q has no error field", tc.name, w.Body.String())
		}
	}
}

func TestRespondErrorFlattensValidationErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type payload struct {
		Email string `validate:"required"`
	}
	err := validator.New().Struct(payload{})
	if err == nil {
		t.Fatal("expected a validation error")
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	body := w.Body.String()
	if !strings.Contains(body, "fields") || !strings.Contains(body, "Email") {
		t.Fatalf("body %q lacks per-field detail", body)
	}
}

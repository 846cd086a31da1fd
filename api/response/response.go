// Package response holds the JSON helpers shared by the HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrBadRequest wraps every decoding or validation failure.
var ErrBadRequest = errors.New("bad request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// MethodNotAllowed rejects r unless it uses method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return false
	}
	w.Header().Set("Allow", method)
	Error(w, http.StatusMethodNotAllowed, "method not allowed")
	return true
}

// Decode reads a JSON body into dst and validates it. An empty body is
// accepted when optional is true.
func Decode(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
		}
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", ErrBadRequest, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

// Message strips the ErrBadRequest prefix for client display.
func Message(err error) string {
	return strings.TrimPrefix(err.Error(), ErrBadRequest.Error()+": ")
}

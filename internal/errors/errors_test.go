package errors

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewDecodeError("page1.png", io.ErrUnexpectedEOF)
	msg := err.Error()
	if !strings.Contains(msg, "decode") || !strings.Contains(msg, "page1.png") {
		t.Errorf("unexpected message: %q", msg)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestIsTypeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("pair 2: %w", NewEncodeError("out.png", nil))
	if !IsType(wrapped, ErrorTypeEncode) {
		t.Error("expected wrapped encode error to be detected")
	}
	if IsType(wrapped, ErrorTypeDecode) {
		t.Error("encode error must not be reported as decode error")
	}
	if IsType(io.EOF, ErrorTypeDecode) {
		t.Error("plain error must not match")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewDecodeError("a", nil), http.StatusUnprocessableEntity},
		{NewValidationError("bad", nil), http.StatusBadRequest},
		{NewPairingError("none", nil), http.StatusUnprocessableEntity},
		{NewEncodeError("a", nil), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

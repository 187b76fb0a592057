package provider

import (
	"strings"
	"testing"
)

func TestHTTPStatusErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		code int
		want string
	}{
		{"standard code keeps its text", 503, "503 Service Unavailable"},
		{"non-standard code still names itself", 599, "599"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &httpStatusError{StatusCode: tt.code}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}

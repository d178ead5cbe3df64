package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithSSLModeDisabled(t *testing.T) {
	tcs := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@db:5432/logs", want: "postgres://u:p@db:5432/logs?sslmode=disable"},
		{in: "postgres://u:p@db:5432/logs?pool_max_conns=5", want: "postgres://u:p@db:5432/logs?pool_max_conns=5&sslmode=disable"},
		{in: "postgres://u:p@db:5432/logs?sslmode=require", want: "postgres://u:p@db:5432/logs?sslmode=require"},
	}

	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, withSSLModeDisabled(tc.in))
		})
	}
}

package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty stays empty", "", "", false},
		{"formatted number", "(987) 654-3210", "9876543210", false},
		{"spaces and dashes", "98765 43210", "9876543210", false},
		{"too short", "12345", "", true},
		{"country code makes it too long", "+91 98765 43210", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail(""))
	assert.NoError(t, ValidateEmail("orders@spares.example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("a@"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Brake pad set", SanitizeText("  Brake\t pad\x00  set \n"))
	assert.Equal(t, "", SanitizeText("   "))
}

func TestRequireText(t *testing.T) {
	err := RequireText("part_number", "  ")
	require.Error(t, err)
	assert.Equal(t, "Part number is required", err.Error())
	assert.Equal(t, "REQUIRED_PART_NUMBER", err.(*DomainError).Code)

	assert.NoError(t, RequireText("name", "Clutch plate"))
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("invoice_date", "2026-10-19"))
	assert.Error(t, ValidateDate("invoice_date", "19/10/2026"))
	assert.Error(t, ValidateDate("invoice_date", "2026-02-30"))

	assert.NoError(t, ValidateOptionalDate("payment_date", nil))
	bad := "yesterday"
	assert.Error(t, ValidateOptionalDate("payment_date", &bad))
}

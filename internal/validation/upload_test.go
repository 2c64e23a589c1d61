package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	v := NewUploadValidator(nil)

	xlsxPayload := append([]byte{0x50, 0x4B, 0x03, 0x04}, []byte("rest of archive")...)

	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  string
	}{
		{"valid xlsx", "cursos.xlsx", xlsxPayload, ""},
		{"valid xlsm", "cursos.xlsm", xlsxPayload, ""},
		{"valid csv", "cursos.csv", []byte("Usuario,Curso\nAna,Seguridad\n"), ""},
		{"empty file", "cursos.xlsx", nil, "is empty"},
		{"xlsx without zip magic", "cursos.xlsx", []byte("not a zip archive"), "not a valid workbook"},
		{"binary renamed to csv", "cursos.csv", []byte{0x00, 0x01, 0x02, 0x03}, "not delimited text"},
		{"excel lock file", "~$cursos.xlsx", xlsxPayload, "temporary Excel lock file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.filename, tt.data)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

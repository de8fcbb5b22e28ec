package dictionary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
)

func validDefinition() dictionary.Definition {
	return dictionary.Definition{
		Name:       "Regions",
		Code:       "REGIONS",
		StartDate:  day(2024, 1, 1),
		FinishDate: day(2030, 12, 31),
	}
}

func Test_Definition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *dictionary.Definition)
		wantErr bool
	}{
		{
			name:   "valid_definition_passes",
			mutate: func(d *dictionary.Definition) {},
		},
		{
			name:    "missing_name_fails",
			mutate:  func(d *dictionary.Definition) { d.Name = "" },
			wantErr: true,
		},
		{
			name:    "missing_code_fails",
			mutate:  func(d *dictionary.Definition) { d.Code = "" },
			wantErr: true,
		},
		{
			name:    "finish_before_start_fails",
			mutate:  func(d *dictionary.Definition) { d.FinishDate = day(2023, 1, 1) },
			wantErr: true,
		},
		{
			name:    "zero_finish_fails",
			mutate:  func(d *dictionary.Definition) { d.FinishDate = time.Time{} },
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := validDefinition()
			tc.mutate(&def)

			err := def.Validate()

			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, dictionary.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_Definition_StatusAsOf(t *testing.T) {
	def := validDefinition()

	assert.Equal(t, dictionary.StatusActive, def.StatusAsOf(day(2024, 6, 1)))
	assert.Equal(t, dictionary.StatusActive, def.StatusAsOf(day(2024, 1, 1)))
	assert.Equal(t, dictionary.StatusInactive, def.StatusAsOf(day(2023, 12, 31)))
	assert.Equal(t, dictionary.StatusInactive, def.StatusAsOf(day(2031, 1, 1)))
}

func Test_Definition_Window(t *testing.T) {
	def := validDefinition()
	window := def.Window()

	assert.True(t, day(2024, 1, 1).Equal(window.Start))
	assert.True(t, day(2030, 12, 31).Equal(window.Finish))
}

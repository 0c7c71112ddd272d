package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := NewParser(strings.NewReader("  \n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := NewParser(strings.NewReader("name\n\xff\xfe\xfd,a,b,c\n"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("\xEF\xBB\xBFName,Part_Number\nPad,BP-1\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())
		assert.Equal(t, []string{"name", "part_number"}, p.Headers())
	})
}

func TestParser_ReadAllRows(t *testing.T) {
	input := "name, part_number ,quantity\n" +
		"Brake Pad,BP-1,4\n" +
		",,\n" +
		"\"Filter, oil\",OF-1\n"

	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)
	require.NoError(t, p.ParseHeader())
	assert.Empty(t, p.MissingHeaders("name", "Part_Number"))
	assert.Equal(t, []string{"mrp"}, p.MissingHeaders("mrp"))

	rows, err := p.ReadAllRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "BP-1", rows[0].Get("part_number"))
	assert.Equal(t, 4, rows[0].Int("quantity", NewErrorCollection(1)))

	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "Filter, oil", rows[1].Get("name"))
	assert.Equal(t, "", rows[1].Get("quantity"))
}

func TestParser_NoDataRows(t *testing.T) {
	p, err := NewParser(strings.NewReader("name,part_number\n"))
	require.NoError(t, err)
	require.NoError(t, p.ParseHeader())

	_, err = p.ReadAllRows()
	assert.ErrorIs(t, err, ErrNoDataRows)
}

func TestRow_NumericCells(t *testing.T) {
	row := &Row{Line: 7, Data: map[string]string{"price": "12.50", "qty": "three", "blank": ""}}
	errs := NewErrorCollection(10)

	assert.Equal(t, "12.5", row.Decimal("price", errs).String())
	assert.True(t, row.Decimal("blank", errs).IsZero())
	assert.Equal(t, 0, row.Int("qty", errs))
	assert.Zero(t, row.Decimal("qty", errs).IntPart())

	require.Equal(t, 2, errs.TotalCount())
	assert.Equal(t, RowError{Row: 7, Column: "qty", Message: "must be a whole number", Value: "three"}, errs.Errors()[0])
	assert.Equal(t, "row 7, column 'qty': must be a number", errs.Errors()[1].Error())
}

func TestErrorCollection_Limit(t *testing.T) {
	errs := NewErrorCollection(2)
	assert.False(t, errs.HasErrors())

	for i := 1; i <= 3; i++ {
		errs.Add(RowError{Row: i, Message: "bad"})
	}

	assert.True(t, errs.HasErrors())
	assert.Len(t, errs.Errors(), 2)
	assert.Equal(t, 3, errs.TotalCount())
	assert.True(t, errs.Truncated())
}

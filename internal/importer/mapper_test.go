package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferMapping(t *testing.T) {
	tests := []struct {
		header string
		want   Field
	}{
		{"name", FieldName},
		{"Nome", FieldName},
		{"PRODUTO", FieldName},
		{"preço", FieldPrice},
		{"preco", FieldPrice},
		{"  Valor  ", FieldPrice},
		{"Preço de Venda", FieldPrice},
		{"estoque", FieldStock},
		{"qtd", FieldStock},
		{"codigo_barra", FieldBarcode},
		{"Código de Barras", FieldBarcode},
		{"EAN", FieldBarcode},
		{"estoque mínimo", FieldMinStock},
		{"Alíquota ICMS", FieldICMSRate},
		{"aliquota cofins", FieldCOFINSRate},
		{"observações", FieldNotes},
		{"fornecedor", FieldSupplier},
		{"price *", FieldPrice},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			m := InferMapping([]string{tt.header})
			got, ok := m.Columns[tt.header]
			require.True(t, ok, "header %q should be mapped", tt.header)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, m.Unmapped)
		})
	}

	t.Run("unknown headers land in unmapped", func(t *testing.T) {
		m := InferMapping([]string{"nome", "coluna interna", "preço"})
		assert.Len(t, m.Columns, 2)
		assert.Equal(t, []string{"coluna interna"}, m.Unmapped)
	})
}

func TestMergeMappings(t *testing.T) {
	inferred := InferMapping([]string{"nome", "coluna interna", "preço"})

	t.Run("overrides win and claim unmapped headers", func(t *testing.T) {
		merged := MergeMappings(inferred, map[string]Field{
			"coluna interna": FieldNotes,
			"preço":          FieldCost,
		})
		assert.Equal(t, FieldName, merged.Columns["nome"])
		assert.Equal(t, FieldNotes, merged.Columns["coluna interna"])
		assert.Equal(t, FieldCost, merged.Columns["preço"])
		assert.Empty(t, merged.Unmapped)
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		MergeMappings(inferred, map[string]Field{"preço": FieldCost})
		assert.Equal(t, FieldPrice, inferred.Columns["preço"])
		assert.Equal(t, []string{"coluna interna"}, inferred.Unmapped)
	})
}

func TestApplyMapping(t *testing.T) {
	headers := []string{"nome", "preço"}
	mapping := InferMapping(headers)

	t.Run("overflow cells fold into the last column", func(t *testing.T) {
		rec := ApplyMapping([]string{"Mouse", "29", "90"}, headers, mapping)
		name, _ := rec.Get(FieldName)
		price, _ := rec.Get(FieldPrice)
		assert.Equal(t, "Mouse", name)
		assert.Equal(t, "29,90", price)
	})

	t.Run("empty cells are absent, not empty strings", func(t *testing.T) {
		rec := ApplyMapping([]string{"", "15.00"}, headers, mapping)
		_, hasName := rec.Get(FieldName)
		assert.False(t, hasName)
		price, hasPrice := rec.Get(FieldPrice)
		assert.True(t, hasPrice)
		assert.Equal(t, "15.00", price)
	})

	t.Run("short rows leave trailing fields absent", func(t *testing.T) {
		rec := ApplyMapping([]string{"Mouse"}, headers, mapping)
		_, hasPrice := rec.Get(FieldPrice)
		assert.False(t, hasPrice)
	})

	t.Run("duplicate headers resolve to first non-empty cell", func(t *testing.T) {
		dup := []string{"preço", "preço"}
		rec := ApplyMapping([]string{"", "42,00"}, dup, InferMapping(dup))
		price, ok := rec.Get(FieldPrice)
		require.True(t, ok)
		assert.Equal(t, "42,00", price)
	})
}

func TestKnownField(t *testing.T) {
	f, ok := KnownField("minStock")
	assert.True(t, ok)
	assert.Equal(t, FieldMinStock, f)

	_, ok = KnownField("preço")
	assert.False(t, ok, "KnownField matches canonical identifiers, not synonyms")
}

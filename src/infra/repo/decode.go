package repo

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/jackc/pgx/v5/pgtype"

	"catalog/src/infra/db"
)

// numericToFloat converts NUMERIC columns, which pgx returns as
// pgtype.Numeric, into float64 fields.
func numericToFloat(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Float64 {
		return data, nil
	}
	n, ok := data.(pgtype.Numeric)
	if !ok {
		return data, nil
	}
	f, err := n.Float64Value()
	if err != nil {
		return nil, err
	}
	if !f.Valid {
		return 0.0, nil
	}
	return f.Float64, nil
}

// decodeRow decodes a result row into out, matching mapstructure tags to
// column names.
func decodeRow(row db.Row, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       numericToFloat,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(row)); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	return nil
}

package source

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rebeliceyang/lazytab/internal/dataset"
)

// QueryTable runs a query against Postgres and materializes the result
// as an in-memory columnar table. Integer columns map to Int64, float
// columns to Float64, booleans to Boolean; every other type is kept as
// its text form.
func QueryTable(ctx context.Context, dsn, query string) (*dataset.Table, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	fields := make([]arrow.Field, len(fieldDescs))
	for i, fd := range fieldDescs {
		fields[i] = arrow.Field{
			Name:     fd.Name,
			Type:     arrowType(fd.DataTypeOID),
			Nullable: true,
		}
	}
	schema := arrow.NewSchema(fields, nil)

	mem := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for i, v := range values {
			appendValue(builder.Field(i), v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	rec := builder.NewRecordBatch()
	defer rec.Release()
	return dataset.FromRecord(rec), nil
}

// arrowType picks the Arrow column type for a Postgres type OID.
func arrowType(oid uint32) arrow.DataType {
	switch oid {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return arrow.PrimitiveTypes.Int64
	case pgtype.Float4OID, pgtype.Float8OID:
		return arrow.PrimitiveTypes.Float64
	case pgtype.BoolOID:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func appendValue(b array.Builder, v any) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch fb := b.(type) {
	case *array.Int64Builder:
		switch n := v.(type) {
		case int16:
			fb.Append(int64(n))
		case int32:
			fb.Append(int64(n))
		case int64:
			fb.Append(n)
		default:
			fb.AppendNull()
		}
	case *array.Float64Builder:
		switch n := v.(type) {
		case float32:
			fb.Append(float64(n))
		case float64:
			fb.Append(n)
		default:
			fb.AppendNull()
		}
	case *array.BooleanBuilder:
		if bv, ok := v.(bool); ok {
			fb.Append(bv)
		} else {
			fb.AppendNull()
		}
	case *array.StringBuilder:
		fb.Append(fmt.Sprintf("%v", v))
	default:
		b.AppendNull()
	}
}

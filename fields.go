package spanlog

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/max-chem-eng/spanlog/models"
)

// Field constructors.

func String(key, value string) models.Field { return models.Field{Key: key, Value: value} }

func Int(key string, value int) models.Field { return models.Field{Key: key, Value: value} }

func Int64(key string, value int64) models.Field { return models.Field{Key: key, Value: value} }

func Uint64(key string, value uint64) models.Field { return models.Field{Key: key, Value: value} }

func Float64(key string, value float64) models.Field { return models.Field{Key: key, Value: value} }

func Bool(key string, value bool) models.Field { return models.Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) models.Field {
	return models.Field{Key: key, Value: value}
}

func Time(key string, value time.Time) models.Field { return models.Field{Key: key, Value: value} }

// Err attaches err under the "error" key.
func Err(err error) models.Field { return models.Field{Key: "error", Value: err} }

func Any(key string, value interface{}) models.Field { return models.Field{Key: key, Value: value} }

// writeFields renders the message followed by " key=value" for each field.
// A value that cannot be rendered makes the whole block fail.
func writeFields(buf *bytes.Buffer, msg string, fields []models.Field) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rendering field value panicked: %v", r)
		}
	}()

	buf.WriteString(msg)
	for i, f := range fields {
		if i > 0 || msg != "" {
			buf.WriteByte(' ')
		}
		buf.WriteString(f.Key)
		buf.WriteByte('=')
		if err := writeValue(buf, f.Value); err != nil {
			return fmt.Errorf("field %q: %w", f.Key, err)
		}
	}
	return nil
}

func writeValue(buf *bytes.Buffer, val interface{}) error {
	b := buf.AvailableBuffer()
	switch v := val.(type) {
	case nil:
		buf.WriteString("<nil>")
	case string:
		buf.Write(strconv.AppendQuote(b, v))
	case error:
		buf.Write(strconv.AppendQuote(b, v.Error()))
	case time.Time:
		buf.Write(v.AppendFormat(b, time.RFC3339Nano))
	case fmt.Stringer:
		buf.WriteString(v.String())
	case int:
		buf.Write(strconv.AppendInt(b, int64(v), 10))
	case int32:
		buf.Write(strconv.AppendInt(b, int64(v), 10))
	case int64:
		buf.Write(strconv.AppendInt(b, v, 10))
	case uint:
		buf.Write(strconv.AppendUint(b, uint64(v), 10))
	case uint32:
		buf.Write(strconv.AppendUint(b, uint64(v), 10))
	case uint64:
		buf.Write(strconv.AppendUint(b, v, 10))
	case float32:
		buf.Write(strconv.AppendFloat(b, float64(v), 'f', -1, 32))
	case float64:
		buf.Write(strconv.AppendFloat(b, v, 'f', -1, 64))
	case bool:
		buf.Write(strconv.AppendBool(b, v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return nil
}

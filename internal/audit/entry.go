package audit

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
)

// Entry is one pending audit record derived from an entity mutation. Values
// are keyed by exported field name; key fields live only in PrimaryKey.
type Entry struct {
	TableName       string
	Type            string
	PrimaryKey      map[string]interface{}
	OldValues       map[string]interface{}
	NewValues       map[string]interface{}
	AffectedColumns []string
}

// Added captures a freshly created entity: every non-key value becomes a
// NewValue.
func Added(tableName string, entity interface{}) Entry {
	entry := Entry{TableName: tableName, Type: model.TrailCreate}
	entry.PrimaryKey = keyValues(entity)
	fields := valueFields(entity)
	entry.NewValues = make(map[string]interface{}, len(fields))
	for _, f := range fields {
		entry.NewValues[f.name] = f.value
		entry.AffectedColumns = append(entry.AffectedColumns, f.name)
	}
	return entry
}

// Modified diffs a snapshot taken before mutation against the saved state.
// Only changed fields are captured. A soft-delete marker transitioning from
// unset to set reclassifies the whole entry as Delete: storage sees an
// update, the audit trail records the logical delete. Returns ok=false when
// nothing changed.
func Modified(tableName string, before, after interface{}) (Entry, bool) {
	entry := Entry{TableName: tableName, Type: model.TrailUpdate}
	entry.PrimaryKey = keyValues(after)
	entry.OldValues = map[string]interface{}{}
	entry.NewValues = map[string]interface{}{}

	beforeFields := fieldMap(before)
	for _, f := range valueFields(after) {
		old, ok := beforeFields[f.name]
		if ok && reflect.DeepEqual(old, f.value) {
			continue
		}
		if f.name == "DeletedOn" && isNilValue(old) && !isNilValue(f.value) {
			entry.Type = model.TrailDelete
		}
		entry.OldValues[f.name] = old
		entry.NewValues[f.name] = f.value
		entry.AffectedColumns = append(entry.AffectedColumns, f.name)
	}

	if len(entry.AffectedColumns) == 0 {
		return Entry{}, false
	}
	return entry, true
}

// Deleted captures a hard delete (join/lookup rows without soft delete):
// OldValues only.
func Deleted(tableName string, entity interface{}) Entry {
	entry := Entry{TableName: tableName, Type: model.TrailDelete}
	entry.PrimaryKey = keyValues(entity)
	fields := valueFields(entity)
	entry.OldValues = make(map[string]interface{}, len(fields))
	for _, f := range fields {
		entry.OldValues[f.name] = f.value
		entry.AffectedColumns = append(entry.AffectedColumns, f.name)
	}
	return entry
}

// Trail converts the entry into its persistent form. Empty value maps stay
// absent instead of serializing to "{}".
func (e Entry) Trail(userID uuid.UUID, at time.Time) model.Trail {
	trail := model.Trail{
		UserID:     userID,
		Type:       e.Type,
		TableName:  e.TableName,
		DateTime:   at,
		PrimaryKey: marshal(e.PrimaryKey),
	}
	if len(e.OldValues) > 0 {
		trail.OldValues = marshal(e.OldValues)
	}
	if len(e.NewValues) > 0 {
		trail.NewValues = marshal(e.NewValues)
	}
	if len(e.AffectedColumns) > 0 {
		trail.AffectedColumns = strings.Join(e.AffectedColumns, ",")
	}
	return trail
}

func marshal(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

type field struct {
	name  string
	value interface{}
}

// valueFields flattens an entity into its auditable scalar fields, skipping
// primary keys and association fields.
func valueFields(entity interface{}) []field {
	var out []field
	walkFields(reflect.ValueOf(entity), func(name string, v reflect.Value, isKey bool) {
		if isKey {
			return
		}
		out = append(out, field{name: name, value: v.Interface()})
	})
	return out
}

func fieldMap(entity interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	walkFields(reflect.ValueOf(entity), func(name string, v reflect.Value, isKey bool) {
		if isKey {
			return
		}
		out[name] = v.Interface()
	})
	return out
}

func keyValues(entity interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	walkFields(reflect.ValueOf(entity), func(name string, v reflect.Value, isKey bool) {
		if isKey {
			out[name] = v.Interface()
		}
	})
	return out
}

func walkFields(v reflect.Value, visit func(name string, v reflect.Value, isKey bool)) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		fv := v.Field(i)

		if sf.Anonymous {
			walkFields(fv, visit)
			continue
		}
		if !auditableKind(sf.Type) {
			continue
		}
		visit(sf.Name, fv, isPrimaryKey(sf))
	}
}

func isPrimaryKey(sf reflect.StructField) bool {
	return strings.Contains(sf.Tag.Get("gorm"), "primaryKey")
}

var timeType = reflect.TypeOf(time.Time{})

// auditableKind keeps scalars, time and uuid values (and pointers to them);
// associations and slices are not audited on their owner.
func auditableKind(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Struct:
		return t == timeType
	case reflect.Array:
		// uuid.UUID is [16]byte
		return t.Elem().Kind() == reflect.Uint8
	default:
		return false
	}
}

func isNilValue(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

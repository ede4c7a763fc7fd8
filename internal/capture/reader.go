package capture

import (
	"encoding/json"
	"fmt"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/config"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/fs"
)

// FileKind names a capture file. Users and devices are co-located in the
// users file; groups and shifts in the groups file.
type FileKind string

const (
	FileSites  FileKind = "sites"
	FileUsers  FileKind = "users"
	FileGroups FileKind = "groups"
)

// Reader resolves a file kind into a flat sequence of parent records with
// embedded children normalized into ordered sub-records.
type Reader struct {
	cfg *config.Config
}

// NewReader creates a reader over the configured capture directory.
func NewReader(cfg *config.Config) *Reader {
	return &Reader{cfg: cfg}
}

// Filename returns the on-disk path for a file kind.
func (r *Reader) Filename(kind FileKind) string {
	return r.cfg.DataFile(string(kind))
}

// Read loads and normalizes one capture file.
func (r *Reader) Read(kind FileKind) ([]Record, error) {
	path := r.Filename(kind)

	exists, err := fs.Exists(path)
	if err != nil {
		return nil, errors.NewInputError(errors.ErrCodeFileMissing,
			fmt.Sprintf("cannot access %s file", kind)).WithDetails(path).WithCause(err)
	}
	if !exists {
		return nil, errors.NewInputError(errors.ErrCodeFileMissing,
			fmt.Sprintf("%s file not found", kind)).WithDetails(path)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.NewInputError(errors.ErrCodeFileMissing,
			fmt.Sprintf("reading %s file", kind)).WithDetails(path).WithCause(err)
	}

	var elements []any
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, errors.NewInputError(errors.ErrCodeParseError,
			fmt.Sprintf("%s file is not a valid JSON array", kind)).WithDetails(path).WithCause(err)
	}

	records := make([]Record, 0, len(elements))
	for i, el := range elements {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, errors.NewInputError(errors.ErrCodeSchemaMismatch,
				fmt.Sprintf("%s file element %d is not an object", kind, i)).WithDetails(path)
		}

		var rec Record
		switch kind {
		case FileSites:
			rec = Record{Kind: KindSite, Fields: obj}
		case FileUsers:
			rec, err = normalizeUser(obj)
		case FileGroups:
			rec, err = normalizeGroup(obj)
		default:
			return nil, errors.NewInputError(errors.ErrCodeSchemaMismatch,
				fmt.Sprintf("unknown file kind %q", kind))
		}
		if err != nil {
			var restoreErr *errors.RestoreError
			if e, ok := err.(*errors.RestoreError); ok {
				restoreErr = e
			} else {
				restoreErr = errors.NewInputError(errors.ErrCodeSchemaMismatch, err.Error())
			}
			return nil, restoreErr.WithDetails(fmt.Sprintf("%s, element %d", path, i))
		}
		records = append(records, rec)
	}

	return records, nil
}

// normalizeUser turns a users-file element {user, devices[]} into a User
// record with ordered Device children; each device's timeframes envelope
// becomes ordered Timeframe children.
func normalizeUser(obj map[string]any) (Record, error) {
	userFields, ok := obj["user"].(map[string]any)
	if !ok {
		return Record{}, errors.NewInputError(errors.ErrCodeSchemaMismatch,
			"users file element is missing its user envelope")
	}

	rec := Record{Kind: KindUser, Fields: userFields}

	devices, _ := obj["devices"].([]any)
	for _, d := range devices {
		devFields, ok := d.(map[string]any)
		if !ok {
			return Record{}, errors.NewInputError(errors.ErrCodeSchemaMismatch,
				"users file device entry is not an object")
		}
		dev := Record{Kind: KindDevice, Fields: devFields}
		for _, tf := range EnvelopeData(devFields["timeframes"]) {
			tfFields, ok := tf.(map[string]any)
			if !ok {
				return Record{}, errors.NewInputError(errors.ErrCodeSchemaMismatch,
					"users file timeframe entry is not an object")
			}
			dev.Children = append(dev.Children, Record{Kind: KindTimeframe, Fields: tfFields})
		}
		delete(devFields, "timeframes")
		rec.Children = append(rec.Children, dev)
	}

	return rec, nil
}

// normalizeGroup turns a groups-file element {group, shifts[]} into a Group
// record with ordered Shift children; each shift's members envelope is
// flattened to a plain list kept in the shift's fields.
func normalizeGroup(obj map[string]any) (Record, error) {
	groupFields, ok := obj["group"].(map[string]any)
	if !ok {
		return Record{}, errors.NewInputError(errors.ErrCodeSchemaMismatch,
			"groups file element is missing its group envelope")
	}

	rec := Record{Kind: KindGroup, Fields: groupFields}

	shifts, _ := obj["shifts"].([]any)
	for _, s := range shifts {
		shiftFields, ok := s.(map[string]any)
		if !ok {
			return Record{}, errors.NewInputError(errors.ErrCodeSchemaMismatch,
				"groups file shift entry is not an object")
		}
		if members := EnvelopeData(shiftFields["members"]); members != nil {
			shiftFields["members"] = members
		} else {
			delete(shiftFields, "members")
		}
		rec.Children = append(rec.Children, Record{Kind: KindShift, Fields: shiftFields})
	}

	return rec, nil
}

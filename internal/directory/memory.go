package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// Memory is an in-memory Directory for engine tests. It stores entities by
// business key, assigns uuid RemoteIds on create, and mimics the target's
// create-vs-replace behavior: an id-bearing body replaces, an id-less body
// creates.
type Memory struct {
	entities map[capture.Kind]map[string]*memEntity

	// AutoDefaultShift, when set, emulates the target auto-creating a
	// default shift whenever a group is created.
	AutoDefaultShift string

	// UpsertHook, when set, runs before every upsert; a non-nil return is
	// surfaced as the upsert result (used to inject remote rejections).
	UpsertHook func(kind capture.Kind, body map[string]any) error

	// FindCalls counts live lookups per kind, letting tests assert on
	// resolution-cache behavior.
	FindCalls map[capture.Kind]int
}

type memEntity struct {
	id     string
	fields map[string]any
}

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		entities:  make(map[capture.Kind]map[string]*memEntity),
		FindCalls: make(map[capture.Kind]int),
	}
}

func (m *Memory) kindMap(kind capture.Kind) map[string]*memEntity {
	if m.entities[kind] == nil {
		m.entities[kind] = make(map[string]*memEntity)
	}
	return m.entities[kind]
}

// Seed stores an entity under key without going through Upsert, returning its id.
func (m *Memory) Seed(kind capture.Kind, key string, fields map[string]any) string {
	id := uuid.NewString()
	if fields == nil {
		fields = map[string]any{}
	}
	m.kindMap(kind)[key] = &memEntity{id: id, fields: fields}
	return id
}

// Get returns the stored fields for key, if present.
func (m *Memory) Get(kind capture.Kind, key string) (map[string]any, bool) {
	e, ok := m.kindMap(kind)[key]
	if !ok {
		return nil, false
	}
	return e.fields, true
}

// IDOf returns the RemoteId stored under key, or "".
func (m *Memory) IDOf(kind capture.Kind, key string) string {
	if e, ok := m.kindMap(kind)[key]; ok {
		return e.id
	}
	return ""
}

// Count returns the number of stored entities of a kind.
func (m *Memory) Count(kind capture.Kind) int {
	return len(m.entities[kind])
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) FindByKey(ctx context.Context, kind capture.Kind, key string) (string, error) {
	m.FindCalls[kind]++
	if e, ok := m.kindMap(kind)[key]; ok {
		return e.id, nil
	}
	return "", ErrNotFound
}

func (m *Memory) Upsert(ctx context.Context, kind capture.Kind, body map[string]any) (Result, error) {
	if m.UpsertHook != nil {
		if err := m.UpsertHook(kind, body); err != nil {
			return Result{}, err
		}
	}

	key, err := m.keyFor(kind, body)
	if err != nil {
		return Result{}, errors.NewRemoteError(errors.ErrCodeRemoteRejected,
			fmt.Sprintf("cannot derive %s key", kind), err.Error())
	}

	entities := m.kindMap(kind)

	if id, ok := body["id"].(string); ok && id != "" {
		// replace by id, the target's update form
		for k, e := range entities {
			if e.id == id {
				if k != key {
					delete(entities, k)
				}
				entities[key] = &memEntity{id: id, fields: copyFields(body)}
				return Result{ID: id, Created: false}, nil
			}
		}
		return Result{}, errors.NewRemoteError(errors.ErrCodeRemoteRejected,
			fmt.Sprintf("no %s with id %s", kind, id), "code: 404, reason: Not Found, message: unknown id")
	}

	if _, exists := entities[key]; exists {
		return Result{}, errors.NewRemoteError(errors.ErrCodeRemoteRejected,
			fmt.Sprintf("%s %q already exists", kind, key),
			"code: 409, reason: Conflict, message: duplicate key")
	}

	id := uuid.NewString()
	entities[key] = &memEntity{id: id, fields: copyFields(body)}

	if kind == capture.KindGroup && m.AutoDefaultShift != "" {
		m.kindMap(capture.KindShift)[CompositeKey(id, m.AutoDefaultShift)] = &memEntity{
			id:     uuid.NewString(),
			fields: map[string]any{"name": m.AutoDefaultShift},
		}
	}

	return Result{ID: id, Created: true}, nil
}

func (m *Memory) Delete(ctx context.Context, kind capture.Kind, key string) error {
	entities := m.kindMap(kind)
	if _, ok := entities[key]; !ok {
		return ErrNotFound
	}
	delete(entities, key)
	return nil
}

func (m *Memory) AddShiftMember(ctx context.Context, groupID, shiftName string, member map[string]any) (string, error) {
	shift, ok := m.kindMap(capture.KindShift)[CompositeKey(groupID, shiftName)]
	if !ok {
		return "", errors.NewRemoteError(errors.ErrCodeRemoteRejected,
			fmt.Sprintf("group %s has no shift %q", groupID, shiftName),
			"code: 404, reason: Not Found, message: shift not found")
	}

	recipient, _ := member["recipient"].(map[string]any)
	id, _ := recipient["id"].(string)
	if id == "" {
		return "", errors.NewRemoteError(errors.ErrCodeRemoteRejected,
			"shift member has no recipient id",
			"code: 400, reason: Bad Request, message: recipient id required")
	}

	members, _ := shift.fields["members"].([]any)
	shift.fields["members"] = append(members, copyFields(member))
	return id, nil
}

// keyFor derives the business key the target instance itself would use.
func (m *Memory) keyFor(kind capture.Kind, body map[string]any) (string, error) {
	name, _ := body["name"].(string)
	switch kind {
	case capture.KindSite:
		if name == "" {
			return "", fmt.Errorf("site body has no name")
		}
		return name, nil
	case capture.KindUser, capture.KindGroup:
		target, _ := body["targetName"].(string)
		if target == "" {
			return "", fmt.Errorf("%s body has no targetName", kind)
		}
		return target, nil
	case capture.KindDevice:
		ownerID, _ := body["owner"].(string)
		if ownerID == "" || name == "" {
			return "", fmt.Errorf("device body needs owner and name")
		}
		// the target names devices <ownerTargetName>|<name>
		for userKey, e := range m.kindMap(capture.KindUser) {
			if e.id == ownerID {
				return CompositeKey(userKey, name), nil
			}
		}
		return "", fmt.Errorf("device owner %s does not exist", ownerID)
	case capture.KindShift:
		groupID, _ := body["group"].(string)
		if groupID == "" || name == "" {
			return "", fmt.Errorf("shift body needs group and name")
		}
		return CompositeKey(groupID, name), nil
	case capture.KindTimeframe:
		deviceID, _ := body["device"].(string)
		if deviceID == "" || name == "" {
			return "", fmt.Errorf("timeframe body needs device and name")
		}
		return CompositeKey(deviceID, name), nil
	default:
		return "", fmt.Errorf("unknown kind %s", kind)
	}
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

package sqlite

import (
	"encoding/json"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// snapshotFile names the JSONL file holding one table in a snapshot.
func snapshotFile(table string) string {
	return table + ".jsonl"
}

// userJSON is the snapshot form of a user. Entity JSON never carries the
// password hash; snapshots must, or imported users could not log in.
type userJSON struct {
	*types.User
	HashedPassword string `json:"hashed_password"`
}

func marshalUser(u *types.User) (json.RawMessage, error) {
	return json.Marshal(userJSON{User: u, HashedPassword: u.PasswordHash})
}

func unmarshalUser(line json.RawMessage) (*types.User, error) {
	rec := userJSON{User: &types.User{IsActive: true}}
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, err
	}
	rec.User.PasswordHash = rec.HashedPassword
	rec.User.Password = ""
	return rec.User, nil
}

// marshalAll encodes each entity as one JSONL record.
func marshalAll[T any](in []*T, marshal func(*T) (json.RawMessage, error)) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(in))
	for _, v := range in {
		line, err := marshal(v)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

// marshalEntity encodes an entity with its own JSON form.
func marshalEntity[T any](v *T) (json.RawMessage, error) {
	return json.Marshal(v)
}

// unmarshalEntity decodes a snapshot record. Unknown fields are ignored so
// snapshots from newer versions still load.
func unmarshalEntity[T any](line json.RawMessage) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(line, v); err != nil {
		return nil, err
	}
	return v, nil
}

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"teambudget/internal/core"
	"teambudget/internal/store"
)

// maxBodyBytes bounds JSON request bodies; backups have their own limit.
const maxBodyBytes = 1 << 20

var (
	errMalformedBody = errors.New("malformed request body")
	errInvalidField  = errors.New("invalid field")
)

// decodeJSON reads one JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errMalformedBody)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

// pathID parses the {id} path value. Unparseable ids map to not found, the
// same as ids that parse but match nothing.
func pathID(r *http.Request) (core.ID, error) {
	id := core.ParseID(r.PathValue("id"))
	if id == core.NoID {
		return core.NoID, fmt.Errorf("id %q: %w", r.PathValue("id"), core.ErrNotFound)
	}
	return id, nil
}

// confirmation turns the confirm query parameter into a store.ConfirmFunc.
// Only an explicit true confirms.
func confirmation(r *http.Request) store.ConfirmFunc {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return func(string) bool { return ok }
}

// feeValue is the body of PUT /api/fees/{key}.
type feeValue struct {
	Value *core.Amount `json:"value"`
}

type addPersonRequest struct {
	Type core.PersonType `json:"type"`
}

type bulkDeleteRequest struct {
	IDs []core.ID `json:"ids"`
}

func (in *bulkDeleteRequest) validate() error {
	if len(in.IDs) == 0 {
		return fmt.Errorf("%w: ids must not be empty", errInvalidField)
	}
	return nil
}

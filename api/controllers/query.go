package controllers

import (
	"net/http"
	"strings"

	"github.com/smartstockhq/smartstock-backend/api/validators"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
	"github.com/smartstockhq/smartstock-backend/pkg/pagination"
)

// pageQuery pulls the shared limit/cursor query parameters for list endpoints.
func pageQuery(r *http.Request) (int, *pagination.Cursor, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return 0, nil, err
	}

	cursor, err := pagination.ParseCursor(strings.TrimSpace(r.URL.Query().Get("cursor")))
	if err != nil {
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return limit, cursor, nil
}

func nextCursorString(cursor *pagination.Cursor) string {
	if cursor == nil {
		return ""
	}
	return pagination.EncodeCursor(*cursor)
}

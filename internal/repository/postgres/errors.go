package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgCodeUniqueViolation = "23505"
	slugIndexName         = "projects_slug_key"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// isSlugViolation reports whether err is the slug unique index rejecting a
// write.
func isSlugViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgCodeUniqueViolation &&
		pgErr.ConstraintName == slugIndexName
}

// containsPattern matches term anywhere in an ILIKE operand. % and _ in term
// are literal.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

package integration

import "context"

// MinItemNumberLength is the shortest item number the ERP accepts
const MinItemNumberLength = 4

// IsValidItemNumber reports whether number has at least four characters,
// all of them ASCII letters, digits, '.', '-' or '_'.
func IsValidItemNumber(number string) bool {
	if len(number) < MinItemNumberLength {
		return false
	}
	for i := 0; i < len(number); i++ {
		c := number[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// ItemNumberRepository gives access to article numbers and the shared
// article number counter of the shop.
type ItemNumberRepository interface {
	Exists(ctx context.Context, number string) (bool, error)
	// ExistsForArticle restricts the check to details of one article
	ExistsForArticle(ctx context.Context, number string, articleID int64) (bool, error)
	// ExistsForDetail restricts the check to one article detail
	ExistsForDetail(ctx context.Context, number string, detailID int64) (bool, error)
	CounterValue(ctx context.Context) (int64, error)
	SetCounterValue(ctx context.Context, value int64) error
}

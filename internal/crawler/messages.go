package crawler

import (
	"fmt"

	"github.com/samvad-hq/position-parser/internal/domain"
)

// UserMessage converts a scrape error into the message shown to clients.
func UserMessage(e domain.ScrapeError) string {
	d := e.Domain
	switch e.Kind {
	case domain.ErrBlocked:
		return fmt.Sprintf("%s is blocking automated access. "+
			"You'll need to visit this page in your browser and enter the content manually.", d)
	case domain.ErrEmptyContent:
		return fmt.Sprintf("%s uses JavaScript to load its content, which the parser can't read. "+
			"Please copy and paste the content manually.", d)
	case domain.ErrTimeout:
		return fmt.Sprintf("%s took too long to respond. "+
			"Try again, or if this persists, the site may be experiencing issues.", d)
	case domain.ErrServerError:
		return fmt.Sprintf("%s is experiencing server issues and may be temporarily down. "+
			"Try again later.", d)
	case domain.ErrNotFound:
		return fmt.Sprintf("The page on %s was not found (404). "+
			"Please check the URL and try again.", d)
	case domain.ErrInvalidURL:
		return fmt.Sprintf("Could not connect to %s. "+
			"Please check the URL is correct and the site is accessible.", d)
	default:
		return fmt.Sprintf("An unexpected error occurred while accessing %s. "+
			"Please try again or enter the content manually.", d)
	}
}

// UserMessages maps every error in order.
func UserMessages(errs []domain.ScrapeError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, UserMessage(e))
	}
	return out
}

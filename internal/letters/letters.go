package letters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hiresage/hiresage/internal/candidate"
)

// Service renders offer and rejection letters to local files. Letter
// generation is fast, synchronous file I/O; network delivery is the mailer's
// concern.
type Service struct {
	dir    string
	logger *zap.Logger
}

func New(dir string, logger *zap.Logger) *Service {
	if strings.TrimSpace(dir) == "" {
		dir = "letters"
	}
	return &Service{dir: dir, logger: logger}
}

// GenerateOffer writes an offer letter for the candidate and returns the file
// path.
func (s *Service) GenerateOffer(c *candidate.Candidate) (string, error) {
	body := fmt.Sprintf(`Dear %s,

We are delighted to inform you that following your interview for the %s
position, we would like to extend you an offer to join our team.

Your interview performance score was %s.

Our HR team will contact you at %s with the next steps and the full
compensation details.

Congratulations, and welcome aboard!

Best regards,
The Hiring Team
`, displayName(c), position(c), scoreLine(c), contactLine(c))

	return s.write(c.ID, "offer", body)
}

// GenerateRejection writes a rejection letter for the candidate and returns
// the file path.
func (s *Service) GenerateRejection(c *candidate.Candidate) (string, error) {
	body := fmt.Sprintf(`Dear %s,

Thank you for taking the time to interview for the %s position.

After careful consideration we have decided not to move forward with your
application at this time. This decision reflects the specific requirements of
the role rather than your overall abilities.

We encourage you to apply again in the future and wish you every success in
your search.

Best regards,
The Hiring Team
`, displayName(c), position(c))

	return s.write(c.ID, "rejection", body)
}

func (s *Service) write(candidateID, kind, body string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create letters directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.txt", kind, candidateID, time.Now().Format("20060102-150405"))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write %s letter: %w", kind, err)
	}

	s.logger.Info("letter generated",
		zap.String("kind", kind),
		zap.String("candidate_id", candidateID),
		zap.String("path", path),
	)

	return path, nil
}

func displayName(c *candidate.Candidate) string {
	if strings.TrimSpace(c.Name) == "" {
		return "Candidate"
	}
	return c.Name
}

func position(c *candidate.Candidate) string {
	if strings.TrimSpace(c.AppliedFor) == "" {
		return "open"
	}
	return c.AppliedFor
}

func scoreLine(c *candidate.Candidate) string {
	if c.InterviewScore == nil {
		return "recorded by our evaluation team"
	}
	return fmt.Sprintf("%d/100", *c.InterviewScore)
}

func contactLine(c *candidate.Candidate) string {
	if strings.TrimSpace(c.Email) == "" {
		return "the contact details on file"
	}
	return c.Email
}

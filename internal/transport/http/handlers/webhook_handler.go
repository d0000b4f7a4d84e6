package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cyberio/backend/internal/config"
	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"github.com/cyberio/backend/internal/transport/http/dto"
)

const (
	githubSignatureHeader = "X-Hub-Signature-256"
	githubEventHeader     = "X-GitHub-Event"
	githubSignaturePrefix = "sha256="
)

// WebhookHandler starts scans for GitHub push and pull request events.
type WebhookHandler struct {
	tracker  ports.ScanTracker
	secret   []byte
	branches map[string]struct{}
	checks   []string
	logger   *logger.Logger
}

func NewWebhookHandler(tracker ports.ScanTracker, cfg config.WebhookConfig, logger *logger.Logger) *WebhookHandler {
	branches := make(map[string]struct{}, len(cfg.Branches))
	for _, b := range cfg.Branches {
		branches[b] = struct{}{}
	}
	return &WebhookHandler{
		tracker:  tracker,
		secret:   []byte(cfg.Secret),
		branches: branches,
		checks:   cfg.Checks,
		logger:   logger,
	}
}

func (h *WebhookHandler) GitHub(c *fiber.Ctx) error {
	signature := c.Get(githubSignatureHeader)
	if signature == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Missing signature"})
	}
	body := c.Body()
	if !h.validSignature(signature, body) {
		h.logger.Warnw("github_webhook_bad_signature", "ip", c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Invalid signature"})
	}

	event := c.Get(githubEventHeader)
	target, skipped, err := h.scanTarget(event, body)
	if err != nil {
		h.logger.Warnw("github_webhook_bad_payload", "event", event, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid webhook payload"})
	}
	if target == "" {
		h.logger.Infow("github_webhook_skipped", "event", event, "reason", skipped)
		return c.JSON(dto.WebhookResponse{Message: "Webhook processed successfully", Skipped: skipped})
	}

	job, err := h.tracker.Create(c.UserContext(), ports.CreateScanInput{Target: target, Checks: h.checks})
	if err != nil {
		h.logger.Errorw("github_webhook_scan_failed", "event", event, "target", target, "error", err)
		return writeError(c, err, "Webhook processing failed")
	}

	h.logger.Infow("github_webhook_scan_started", "event", event, "target", target, "scan_id", job.ID)
	return c.JSON(dto.WebhookResponse{Message: "Webhook processed successfully", ScanID: job.ID})
}

func (h *WebhookHandler) validSignature(signature string, body []byte) bool {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := githubSignaturePrefix + hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1
}

// scanTarget returns the repository to scan, or an empty target and the
// reason the event was ignored.
func (h *WebhookHandler) scanTarget(event string, body []byte) (string, string, error) {
	switch event {
	case "push":
		var push dto.GitHubPushEvent
		if err := json.Unmarshal(body, &push); err != nil {
			return "", "", err
		}
		if _, ok := h.branches[strings.TrimPrefix(push.Ref, "refs/heads/")]; !ok {
			return "", "branch not scanned", nil
		}
		if len(push.Commits) == 0 {
			return "", "no commits", nil
		}
		return repositoryTarget(push.Repository)

	case "pull_request":
		var pr dto.GitHubPullRequestEvent
		if err := json.Unmarshal(body, &pr); err != nil {
			return "", "", err
		}
		if pr.Action != "opened" && pr.Action != "synchronize" {
			return "", "pull request action " + pr.Action, nil
		}
		return repositoryTarget(pr.Repository)

	default:
		return "", "unhandled event " + event, nil
	}
}

func repositoryTarget(repo dto.GitHubRepository) (string, string, error) {
	if repo.CloneURL == "" {
		return "", "repository has no clone url", nil
	}
	return repo.CloneURL, "", nil
}

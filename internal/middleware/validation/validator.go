package validation

import (
	"math"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxBatchSize        int
	VectorDimensions    int
	MaxNameLength       int
	MaxNotesSize        int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware rejects malformed clinical payloads before they reach a handler.
// It checks the body shape only; range checks on criteria live with intake.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = 500
	}
	if cfg.VectorDimensions == 0 {
		cfg.VectorDimensions = 8
	}
	if cfg.MaxNameLength == 0 {
		cfg.MaxNameLength = 200
	}
	if cfg.MaxNotesSize == 0 {
		cfg.MaxNotesSize = 256 * 1024
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		method := c.Method()
		if method != fiber.MethodPost && method != fiber.MethodPut {
			return c.Next()
		}

		contentType := c.Get(fiber.HeaderContentType)
		if contentType != "" && !allowedType(contentType, cfg.AllowedContentTypes) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		path := c.Path()
		var check func(req map[string]interface{}) string
		switch {
		case strings.HasSuffix(path, "/triage"):
			check = func(req map[string]interface{}) string { return checkTriage(req, cfg) }
		case strings.HasSuffix(path, "/routing"):
			check = func(req map[string]interface{}) string { return checkRouting(req, cfg) }
		case strings.HasSuffix(path, "/patients"):
			check = func(req map[string]interface{}) string { return checkPatient(req, cfg) }
		default:
			return c.Next()
		}

		var req map[string]interface{}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		if msg := check(req); msg != "" {
			cfg.Logger.Warn("Rejected request payload",
				zap.String("ip", c.IP()),
				zap.String("path", path),
				zap.String("reason", msg),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": msg,
			})
		}

		return c.Next()
	}
}

func allowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

func checkTriage(req map[string]interface{}, cfg Config) string {
	patients, ok := req["patients"].([]interface{})
	if !ok {
		return "patients must be an array"
	}
	if len(patients) > cfg.MaxBatchSize {
		return "too many patients in one batch"
	}
	for _, p := range patients {
		obj, ok := p.(map[string]interface{})
		if !ok {
			return "each patient must be an object"
		}
		if msg := checkPatient(obj, cfg); msg != "" {
			return msg
		}
	}
	return ""
}

func checkRouting(req map[string]interface{}, cfg Config) string {
	if id, ok := req["patient_id"]; ok {
		if _, isString := id.(string); !isString {
			return "patient_id must be a string"
		}
	}

	raw, ok := req["symptom_vector"]
	if !ok || raw == nil {
		return ""
	}
	vec, ok := raw.([]interface{})
	if !ok {
		return "symptom_vector must be an array"
	}
	if len(vec) != cfg.VectorDimensions {
		return "symptom_vector has wrong dimension"
	}
	for _, v := range vec {
		f, ok := v.(float64)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return "symptom_vector must contain numbers"
		}
	}
	return ""
}

func checkPatient(req map[string]interface{}, cfg Config) string {
	for _, field := range []string{"name", "condition_desc", "vitals"} {
		s, ok := req[field].(string)
		if !ok {
			continue
		}
		if len(s) > cfg.MaxNameLength && field == "name" {
			return "name exceeds maximum length"
		}
		if containsXSS(s) {
			return "Invalid " + field + " content"
		}
	}

	if notes, ok := req["notes"].(string); ok && len(notes) > cfg.MaxNotesSize {
		return "notes exceed maximum size"
	}

	for _, field := range []string{"severity", "urgency", "resource_need", "waiting_impact", "age_vulnerability", "pain_level", "age"} {
		v, ok := req[field]
		if !ok {
			continue
		}
		if _, isNumber := v.(float64); !isNumber {
			return field + " must be a number"
		}
	}
	return ""
}

func containsXSS(input string) bool {
	return xssPattern.MatchString(input)
}

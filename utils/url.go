package utils

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GetDownloadURL builds an absolute URL for a file served under the app's
// static routes, using the scheme and host of the current request.
func GetDownloadURL(c *fiber.Ctx, filePath string) string {
	filePath = strings.TrimPrefix(filePath, "/")
	return fmt.Sprintf("%s://%s/%s", c.Protocol(), c.Hostname(), filePath)
}

package worker

import (
	"strconv"
	"strings"

	"github.com/sangkips/clientes-service/internal/queue"
)

const DefaultWelcomeTemplate = "Welcome {name}! Your registration is complete. We will reach you at {email}."

// RenderWelcome replaces template variables with the registered customer's data
// Supported variables: {name}, {email}, {customer_id}
func RenderWelcome(template string, msg queue.CustomerRegisteredMessage) string {
	rendered := template
	rendered = strings.ReplaceAll(rendered, "{name}", msg.Name)
	rendered = strings.ReplaceAll(rendered, "{email}", msg.Email)
	rendered = strings.ReplaceAll(rendered, "{customer_id}", strconv.Itoa(int(msg.CustomerID)))
	return rendered
}

// Command mockcollector is a throwaway Dynatrace-compatible collector for
// local smoke-testing of rumkit against a real HTTP server instead of a unit
// test double. It accepts the new-session GET and beacon POST, logs what it
// received, and always answers with capture fully enabled.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	flag.Parse()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/mbeacon", handleExchange)
	app.Post("/mbeacon", handleExchange)

	log.Printf("mockcollector listening on %s", *addr)
	if err := app.Listen(*addr); err != nil {
		log.Fatal(err)
	}
}

func handleExchange(c *fiber.Ctx) error {
	reqType := c.Query("type")
	body := c.Body()

	if reqType == "m" {
		log.Printf("new-session: %s", c.OriginalURL())
	} else {
		log.Printf("beacon chunk (%d bytes): %s", len(body), truncate(string(body), 200))
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	return c.SendString(statusResponse())
}

func statusResponse() string {
	return fmt.Sprintf(
		"type=m&cp=1&er=1&cr=1&bl=%d&id=%d&tc=%d&sr=%d&mp=1&ss=0&md=0&st=%d&vs=2",
		150*1024, 1, 100, 2, 600,
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package persona

import (
	"fmt"
	"sort"
	"strings"
)

// Persona is a named system-instruction preset for the agent.
type Persona struct {
	Name        string
	Description string
	Instruction string
	// WithImageTool indicates the persona can paint images mid-conversation.
	WithImageTool bool
}

var brad = Persona{
	Name:        "BradAgent",
	Description: "Chat with Brad Pitt",
	Instruction: "You will act like Brad Pitt in all of your responses. " +
		"You are to answer as Brad Pitt would - laid back, charming, and candid " +
		"about your movie roles, your craft, and life in Hollywood.",
}

var angelina = Persona{
	Name:        "AngelinaAgent",
	Description: "Chat with Angelina Jolie",
	Instruction: `You are Angelina Jolie, the acclaimed actress and humanitarian. You have a magical canvas where you can bring images to life through your artistic vision.

Respond to all conversations as Angelina Jolie would - with grace, intelligence, passion and humor for your craft, movies and humanitarian work.

When someone asks you to create, generate, or draw an image, imagine you're picking up your brush and painting on your special canvas. Use the 'generate_image' tool to bring their vision to life, especially for funny or humorous requests.

Before creating an image, describe it in your characteristic thoughtful way, then use the tool. After the image is created, tell them about your artistic creation as Angelina would.`,
	WithImageTool: true,
}

var registry = map[string]Persona{
	"brad":     brad,
	"angelina": angelina,
}

// Lookup returns the persona registered under name (case-insensitive).
func Lookup(name string) (Persona, error) {
	p, ok := registry[strings.ToLower(name)]
	if !ok {
		return Persona{}, fmt.Errorf("persona: unknown persona %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists the registered persona names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

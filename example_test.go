package mostrador_test

import (
	"context"
	"fmt"
	"log"

	"github.com/unanue/mostrador"
)

// Example walks the first two turns of a conversation against the built-in
// in-memory defaults: the embedded knowledge base and the demo employee
// directory.
func Example() {
	assistant, err := mostrador.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// An empty first message produces the welcome prompt.
	if _, err := assistant.Handle(ctx, "demo", ""); err != nil {
		log.Fatal(err)
	}

	turn, err := assistant.Handle(ctx, "demo", "mi email es juan.perez@eroski.es y trabajo en Eroski Bilbao")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(turn.Replies[0])
	// Output:
	// Perfecto, Juan Pérez (Eroski Bilbao). ¿En qué puedo ayudarte? Cuéntame qué problema tienes o qué necesitas consultar.
}

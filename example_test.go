package cloudify_test

import (
	"context"
	"fmt"
	"log"

	cloudify "github.com/NotMyFault/cloudify-plugin"
	"github.com/NotMyFault/cloudify-plugin/pkg/adapters/memory"
	"github.com/NotMyFault/cloudify-plugin/pkg/config"
)

// ExampleNew_memory converts documents held in memory instead of the working directory.
func ExampleNew_memory() {
	store := memory.NewStoreFrom(map[string]string{
		"outputs.yaml": "endpoint:\n  ip: 10.0.0.5\n  port: 8080\n",
		"mapping.json": `{"host": "endpoint.ip", "port": "endpoint.port", "dns": "endpoint.dns"}`,
	})

	conv, err := cloudify.New("", cloudify.WithSource(store), cloudify.WithSink(store))
	if err != nil {
		log.Fatal(err)
	}

	report, err := conv.Convert(context.Background(), config.Config{
		OutputsLocation: "outputs.yaml",
		MappingLocation: "mapping.json",
		InputsLocation:  "inputs.json",
	})
	if err != nil {
		log.Fatal(err)
	}

	data, _ := store.Get("inputs.json")
	fmt.Print(string(data))
	fmt.Println("omitted:", report.Omitted)

	// Output:
	// {
	//   "host": "10.0.0.5",
	//   "port": 8080
	// }
	// omitted: [dns]
}

/*
Package cloudify converts the outputs of one deployment into the inputs of the next.

A conversion reads an outputs document (JSON, or YAML when the text is not valid JSON),
applies a mapping from input names to dot-separated paths into the outputs, and writes
the resulting inputs document as canonical JSON.

# Mapping

Each mapping entry names a target input and a path expression:

	endpoint_ip: endpoint.ip
	db_port: database.port
	everything: ""

Segments are matched against mapping keys one level at a time. An entry whose path
does not resolve is left out of the inputs. An entry that is not a string, or a path
that would descend into a list, aborts the conversion with a *domain.MappingError.
Resolved values are copied, never shared with the outputs document.

# Usage

	conv, err := cloudify.New("/srv/deploy")
	if err != nil {
		log.Fatal(err)
	}

	report, err := conv.Convert(ctx, config.Config{
		OutputsLocation: "outputs.json",
		MappingLocation: "mapping.yaml",
		InputsLocation:  "next/inputs.json",
	})

Errors are classified with domain.Kind: "config", "parse", "io" or "mapping".
Nothing is written when a conversion fails.

# Adapters

Documents are read through ports.DocumentSource and written through ports.DocumentSink.
The default is the working directory (pkg/adapters/file); pkg/adapters/memory keeps
documents in memory for tests and embedding, and pkg/adapters/http serves the
transform over HTTP.
*/
package cloudify

/*
Package mapping derives an inputs document from an outputs document.

A mapping specification is itself a document whose keys are the input names
to produce and whose values are path expressions into the outputs:

	endpoint: capabilities.endpoint.url
	admin_user: outputs.admin.name
	everything: ""

A path expression is a dot-delimited sequence of keys. The empty expression
addresses the whole outputs document.

# Resolution rules

  - A missing key, or a scalar reached while segments remain, leaves the input out of the result.
  - A list reached while segments remain is a MappingError.
  - A path expression that is not a string, or that has an empty segment, is a MappingError.

Resolved values are deep-copied, so the result can be modified freely.
*/
package mapping

package templates

import "fmt"

// DefaultHead is the stock rwf_head producer: it injects the script and
// meta tags the framework frontend expects. Hosts that serve their own
// bundles replace it with SetHeadFunc.
func DefaultHead() string {
	return `<script src="/assets/rwf/stimulus.min.js" defer></script>
<script src="/assets/rwf/turbo.min.js" defer></script>
<meta name="turbo-prefetch" content="false">`
}

// DefaultTurboStream is the stock rwf_turbo_stream producer: a
// turbo-stream-source element subscribed to the given endpoint.
func DefaultTurboStream(endpoint string) string {
	return fmt.Sprintf(`<turbo-stream-source src=%q></turbo-stream-source>`, endpoint)
}

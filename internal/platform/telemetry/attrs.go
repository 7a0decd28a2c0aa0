package telemetry

import (
	"strconv"

	"go.opentelemetry.io/otel/attribute"
)

// Label keys. Values are bounded: routes are collapsed by the metrics
// middleware and results, kinds and providers come from fixed sets.
const (
	methodKey   = attribute.Key("method")
	routeKey    = attribute.Key("route")
	statusKey   = attribute.Key("status")
	resultKey   = attribute.Key("result")
	kindKey     = attribute.Key("kind")
	providerKey = attribute.Key("provider")
)

func statusAttr(status int) attribute.KeyValue {
	return statusKey.String(strconv.Itoa(status))
}

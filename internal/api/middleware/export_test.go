package middleware

var RouteLabel = routeLabel

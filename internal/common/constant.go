package common

// AdministrateCheckersCapability is the capability a caller must hold to
// create or modify checkers.
const AdministrateCheckersCapability = "administrateCheckers"

// AuthorizationHeaderName carries the bearer token on inbound requests.
const AuthorizationHeaderName = "Authorization"

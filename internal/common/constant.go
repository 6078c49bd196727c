package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultTenantPrefix prefixes the id of a tenant mapping row to form the
// name of the tenant's database.
const DefaultTenantPrefix = "user_db_"

package config

// Kind is the coercion type of a registered setting.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

// Setting describes one entry in the fixed registry of recognized settings.
type Setting struct {
	Name    string
	Kind    Kind
	Default string
	Secret  bool
}

const (
	// DefaultJWTSecret is the documented insecure default. A process outside
	// the development environment refuses to start while JWT_SECRET equals it.
	DefaultJWTSecret = "change-me-in-development"

	// SecretPlaceholder replaces secret values in every exported view.
	SecretPlaceholder = "secret"
)

// Registered setting names.
const (
	APIPort                   = "API_PORT"
	BuiltAt                   = "BUILT_AT"
	ConfigFolder              = "CONFIG_FOLDER"
	DocsFolder                = "DOCS_FOLDER"
	Environment               = "ENVIRONMENT"
	EnableLogin               = "ENABLE_LOGIN"
	JWTAlgorithm              = "JWT_ALGORITHM"
	JWTAudience               = "JWT_AUDIENCE"
	JWTIssuer                 = "JWT_ISSUER"
	JWTSecret                 = "JWT_SECRET"
	JWTTTLMinutes             = "JWT_TTL_MINUTES"
	MongoConnectionString     = "MONGO_CONNECTION_STRING"
	MongoDBName               = "MONGO_DB_NAME"
	EnumeratorsCollectionName = "ENUMERATORS_COLLECTION_NAME"
	VersionsCollectionName    = "VERSIONS_COLLECTION_NAME"
)

// registry enumerates every recognized setting. Order here is the order
// Items() reports.
func registry() []Setting {
	return []Setting{
		{Name: APIPort, Kind: KindInt, Default: "8080"},
		{Name: BuiltAt, Kind: KindString, Default: "LOCAL"},
		{Name: ConfigFolder, Kind: KindString, Default: "./config"},
		{Name: DocsFolder, Kind: KindString, Default: "./docs"},
		{Name: Environment, Kind: KindString, Default: "development"},
		{Name: EnableLogin, Kind: KindBool, Default: "false"},
		{Name: JWTAlgorithm, Kind: KindString, Default: "HS256"},
		{Name: JWTAudience, Kind: KindString, Default: "api"},
		{Name: JWTIssuer, Kind: KindString, Default: "self"},
		{Name: JWTSecret, Kind: KindString, Default: DefaultJWTSecret, Secret: true},
		{Name: JWTTTLMinutes, Kind: KindInt, Default: "60"},
		{Name: MongoConnectionString, Kind: KindString, Default: "mongodb://localhost:27017", Secret: true},
		{Name: MongoDBName, Kind: KindString, Default: "apiutils"},
		{Name: EnumeratorsCollectionName, Kind: KindString, Default: "Enumerators"},
		{Name: VersionsCollectionName, Kind: KindString, Default: "Versions"},
	}
}

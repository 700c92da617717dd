package constants

// Application Information
const (
	AppName    = "JobLane Identity Service"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// User Roles
const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
)

// Cookie Names
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
	// CookieSession is a non-HttpOnly marker consulted by the session gate
	// for presence-only routing. It carries no trusted data.
	CookieSession = "session"
)

// Redis Key Prefixes
const (
	RedisKeyPrefix       = "joblane:"
	RedisKeyVerification = RedisKeyPrefix + "verify:jti:"
)

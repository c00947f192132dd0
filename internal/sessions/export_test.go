package sessions

// MaxBodySize exposes maxBodySize to the external sessions_test package.
const MaxBodySize = maxBodySize

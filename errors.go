package glmstar

import "fmt"

// ConfigError indicates an invalid model configuration, such as a mixing
// parameter outside [0, 1], a penalty sequence that is not strictly
// decreasing, or mismatched data dimensions.  Configuration is checked once
// when fitting begins, before any numeric work is done.
type ConfigError string

func (e ConfigError) Error() string { return string(e) }

func configErrorf(format string, args ...interface{}) ConfigError {
	return ConfigError(fmt.Sprintf(format, args...))
}

// DomainError indicates that the response data are not valid for the chosen
// family, for example negative counts with the Poisson family.
type DomainError string

func (e DomainError) Error() string { return string(e) }

func domainErrorf(format string, args ...interface{}) DomainError {
	return DomainError(fmt.Sprintf(format, args...))
}

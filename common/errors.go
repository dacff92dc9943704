package common

import (
	"path/filepath"
	"runtime"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
)

// ErrWithCaller annotates the error with the name of the calling function
func ErrWithCaller(err error) error {
	pc := make([]uintptr, 2)
	runtime.Callers(2, pc)
	f := runtime.FuncForPC(pc[0])
	return errors.WithMessage(err, filepath.Base(f.Name()))
}

// LogIgnoreError logs the error with the provided message if it's non-nil, then moves on
func LogIgnoreError(err error, msg string, data logrus.Fields) {
	if err == nil {
		return
	}

	l := logrus.WithError(err)
	if data != nil {
		l = l.WithFields(data)
	}

	l.Error(msg)
}

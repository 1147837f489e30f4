package zkp

import (
	"github.com/sirupsen/logrus"
	"github.com/zkpauth/zkp/primality"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.StandardLogger()
	primality.Logger = Logger
}

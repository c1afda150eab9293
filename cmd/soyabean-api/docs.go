package main

// General API documentation for swaggo. Run `swag init -g cmd/soyabean-api/docs.go -o docs` to regenerate.
//
// @title           soyabean-api
// @version         1.0
// @description     Classifies soybean leaf images into one of seven disease categories.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http

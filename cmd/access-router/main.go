// Idiomatic entrypoint: delegates to Execute in root.go.
package main

func main() {
	Execute()
}

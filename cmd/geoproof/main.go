// Command geoproof proves geometric theorems stated in problem files.
package main

func main() {
	Execute()
}

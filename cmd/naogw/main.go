// Command naogw serves the NAO REST gateway and drives the robot from the
// command line.
package main

func main() {
	Execute()
}

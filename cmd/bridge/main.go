// Command bridge inspects the framework registry and converts SafeTensors
// arrays between frameworks.
package main

func main() {
	Execute()
}

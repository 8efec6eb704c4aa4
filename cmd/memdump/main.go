// Command memdump inspects memdebug heap snapshots.
package main

func main() {
	execute()
}

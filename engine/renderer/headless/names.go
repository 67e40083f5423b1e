package headless

import "fmt"

// namePool hands out object names the way a GL driver does: lowest free name first,
// never 0, released names are reused.
type namePool struct {
	owners []bool
}

func (p *namePool) acquire() uint32 {
	if len(p.owners) == 0 {
		p.owners = make([]bool, 0, 64)
	}
	for i, used := range p.owners {
		// Existing free spot. Take it.
		if !used {
			p.owners[i] = true
			return uint32(i) + 1
		}
	}

	// If here, no existing free slots, push one.
	p.owners = append(p.owners, true)
	return uint32(len(p.owners))
}

func (p *namePool) release(id uint32) error {
	if id == 0 {
		return nil
	}
	if int(id) > len(p.owners) || !p.owners[id-1] {
		return fmt.Errorf("release of unknown name %d", id)
	}
	p.owners[id-1] = false
	return nil
}

func (p *namePool) live() int {
	n := 0
	for _, used := range p.owners {
		if used {
			n++
		}
	}
	return n
}

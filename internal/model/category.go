package model

// Category groups tasks by area (work, health, study, etc.) and carries its
// own experience counter, level and color rotation.
type Category struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	XP         int      `json:"xp"`
	Level      int      `json:"level"`
	ColorOrder []string `json:"colorOrder"`
	ColorIndex int      `json:"colorIndex"`
	Tasks      []Task   `json:"tasks"`
}

// NextColor returns the color for a new task and advances the rotation.
func (c *Category) NextColor() string {
	if len(c.ColorOrder) == 0 {
		return ""
	}
	if c.ColorIndex < 0 || c.ColorIndex >= len(c.ColorOrder) {
		c.ColorIndex = 0
	}
	color := c.ColorOrder[c.ColorIndex]
	c.ColorIndex = (c.ColorIndex + 1) % len(c.ColorOrder)
	return color
}

// FindTask returns the task with the given id, or nil.
func (c *Category) FindTask(id string) *Task {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return &c.Tasks[i]
		}
	}
	return nil
}

// DoneCount returns how many tasks are currently done.
func (c Category) DoneCount() int {
	n := 0
	for _, task := range c.Tasks {
		if task.Done {
			n++
		}
	}
	return n
}

func (c Category) clone() Category {
	c.ColorOrder = append([]string{}, c.ColorOrder...)
	tasks := make([]Task, 0, len(c.Tasks))
	for _, task := range c.Tasks {
		tasks = append(tasks, task.clone())
	}
	c.Tasks = tasks
	return c
}

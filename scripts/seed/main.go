package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/bulletlog/internal/config"
	"github.com/bulletlog/internal/db"
	"github.com/bulletlog/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// 演示数据生成器
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")

	createDemoUser()
	createDemoLabelsAndNotes()
	createDemoTasks()
	createDemoHabits()

	fmt.Println("演示数据生成完成！")
	fmt.Println("用户: demo (密码: demo123)")
}

func createDemoUser() {
	var count int64
	db.DB.Model(&db.User{}).Count(&count)
	if count > 0 {
		fmt.Println("用户已存在，跳过创建")
		return
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.DefaultCost)
	db.DB.Create(&db.User{Username: "demo", Password: string(hashedPassword)})

	fmt.Println("✅ 演示用户创建完成")
}

func createDemoLabelsAndNotes() {
	var count int64
	db.DB.Model(&db.Note{}).Count(&count)
	if count > 0 {
		fmt.Println("笔记已存在，跳过创建")
		return
	}

	labels := service.NewLabelService(db.DB)
	notes := service.NewNoteService(db.DB)

	labelIDs := make(map[string]uint)
	for _, name := range []string{"工作", "生活", "灵感", "阅读"} {
		label, err := labels.Create(name, randomColor())
		if err != nil {
			log.Fatal("创建标签失败:", err)
		}
		labelIDs[name] = label.ID
	}

	samples := []struct {
		title   string
		content string
		labels  []string
		starred bool
		daysAgo int
	}{
		{"晨间日记", "今天跑了 5 公里，状态不错。\n\n- 配速 5'30\n- 心率平稳", []string{"生活"}, false, 6},
		{"周会纪要", "## 发布计划\n\n下周三发布 v1.2，重点验证同步逻辑。", []string{"工作"}, true, 5},
		{"读书摘录", "> 习惯的力量在于复利。\n\n出自《原子习惯》。", []string{"阅读", "灵感"}, false, 3},
		{"产品灵感", "给日历视图加一个热力图模式，按完成度着色。", []string{"灵感"}, true, 1},
	}

	for _, sample := range samples {
		ids := make([]uint, 0, len(sample.labels))
		for _, name := range sample.labels {
			ids = append(ids, labelIDs[name])
		}
		if _, err := notes.Create(service.NoteInput{
			Title:     sample.title,
			Content:   sample.content,
			IsStarred: sample.starred,
			NoteDate:  time.Now().AddDate(0, 0, -sample.daysAgo),
			LabelIDs:  ids,
		}); err != nil {
			log.Fatal("创建笔记失败:", err)
		}
	}

	fmt.Println("✅ 演示标签与笔记创建完成")
}

func createDemoTasks() {
	var count int64
	db.DB.Model(&db.Task{}).Count(&count)
	if count > 0 {
		fmt.Println("任务已存在，跳过创建")
		return
	}

	tasks := service.NewTaskService(db.DB)

	due := time.Now().AddDate(0, 0, 3)
	parent, err := tasks.Create(service.TaskInput{Title: "准备季度汇报", DueDate: &due})
	if err != nil {
		log.Fatal("创建任务失败:", err)
	}

	for _, title := range []string{"整理数据", "画图表", "写讲稿"} {
		if _, err := tasks.Create(service.TaskInput{Title: title, ParentID: &parent.ID}); err != nil {
			log.Fatal("创建子任务失败:", err)
		}
	}

	overdue := time.Now().AddDate(0, 0, -2)
	if _, err := tasks.Create(service.TaskInput{Title: "交水电费", DueDate: &overdue}); err != nil {
		log.Fatal("创建任务失败:", err)
	}

	fmt.Println("✅ 演示任务创建完成")
}

func createDemoHabits() {
	var count int64
	db.DB.Model(&db.Habit{}).Count(&count)
	if count > 0 {
		fmt.Println("习惯已存在，跳过创建")
		return
	}

	habits := service.NewHabitService(db.DB)
	logs := service.NewHabitLogService(db.DB)

	running, err := habits.Create(service.HabitInput{
		Label:           "晨跑",
		Color:           "#34d399",
		HabitType:       service.HabitTypeAmount,
		FrequencyDays:   3,
		FrequencyPeriod: "week",
		AmountTarget:    5,
		Units:           "km",
	})
	if err != nil {
		log.Fatal("创建习惯失败:", err)
	}

	reading, err := habits.Create(service.HabitInput{
		Label:           "阅读",
		Color:           "#60a5fa",
		HabitType:       service.HabitTypeTime,
		FrequencyDays:   10,
		FrequencyPeriod: "month",
		AmountTarget:    30,
		Units:           "min",
	})
	if err != nil {
		log.Fatal("创建习惯失败:", err)
	}

	sleep, err := habits.Create(service.HabitInput{
		Label:           "早睡",
		Color:           "#f87171",
		HabitType:       service.HabitTypeCheck,
		FrequencyDays:   7,
		FrequencyPeriod: "week",
	})
	if err != nil {
		log.Fatal("创建习惯失败:", err)
	}

	// 过去 60 天的随机打卡
	for daysAgo := 60; daysAgo >= 0; daysAgo-- {
		date := time.Now().AddDate(0, 0, -daysAgo)

		if rand.Float64() < 0.45 {
			amount := 3 + rand.Float64()*4
			pct := int(amount / 5 * 100)
			if _, err := logs.Upsert(service.HabitLogInput{
				HabitID:             running.ID,
				LogDate:             date,
				PercentageCompleted: pct,
				Amount:              amount,
				AmountTarget:        5,
				Source:              "seed",
			}); err != nil {
				log.Fatal("打卡失败:", err)
			}
		}

		if rand.Float64() < 0.35 {
			minutes := float64(15 + rand.Intn(45))
			if _, err := logs.Upsert(service.HabitLogInput{
				HabitID:             reading.ID,
				LogDate:             date,
				PercentageCompleted: int(minutes / 30 * 100),
				Amount:              minutes,
				AmountTarget:        30,
				Source:              "seed",
			}); err != nil {
				log.Fatal("打卡失败:", err)
			}
		}

		if rand.Float64() < 0.7 {
			if _, err := logs.Upsert(service.HabitLogInput{
				HabitID:             sleep.ID,
				LogDate:             date,
				PercentageCompleted: 100,
				Amount:              1,
				AmountTarget:        1,
				Source:              "seed",
			}); err != nil {
				log.Fatal("打卡失败:", err)
			}
		}
	}

	fmt.Println("✅ 演示习惯与打卡创建完成")
}

func randomColor() string {
	palette := []string{"#60a5fa", "#34d399", "#f87171", "#fbbf24", "#a78bfa", "#f472b6"}
	return palette[rand.Intn(len(palette))]
}
